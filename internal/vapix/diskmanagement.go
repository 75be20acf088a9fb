package vapix

import (
	"context"
	"net/url"
)

const diskListPath = "/axis-cgi/disks/list.cgi"

// DiskManagement is the edge storage disk management API.
type DiskManagement struct {
	client     *Client
	apiVersion string
}

// DiskManagement returns the disk API without consulting API discovery.
// On firmware that lacks it, List reports ErrUnsupportedFeature.
func (c *Client) DiskManagement() *DiskManagement {
	return &DiskManagement{client: c, apiVersion: "1.0"}
}

// CleanupPolicy decides how a disk reclaims space.
type CleanupPolicy string

const (
	CleanupFIFO CleanupPolicy = "fifo"
	CleanupNone CleanupPolicy = "none"
)

// Filesystem is a disk's filesystem type.
type Filesystem string

const (
	FilesystemExt4 Filesystem = "ext4"
	FilesystemVFAT Filesystem = "vfat"
	FilesystemCIFS Filesystem = "cifs"
	FilesystemNone Filesystem = "none"
)

// DiskInfo describes one disk: an SD card, a local drive or a network share.
type DiskInfo struct {
	DiskID             string        `xml:"diskid,attr"`
	Name               string        `xml:"name,attr"`
	TotalSize          uint64        `xml:"totalsize,attr"` // bytes
	FreeSize           uint64        `xml:"freesize,attr"`  // bytes
	CleanupLevel       int           `xml:"cleanuplevel,attr"`
	CleanupMaxAge      int           `xml:"cleanupmaxage,attr"`
	CleanupPolicy      CleanupPolicy `xml:"cleanuppolicy,attr"`
	Locked             Flag          `xml:"locked,attr"`
	Full               Flag          `xml:"full,attr"`
	ReadOnly           Flag          `xml:"readonly,attr"`
	Status             string        `xml:"status,attr"`
	Filesystem         Filesystem    `xml:"filesystem,attr"`
	Group              string        `xml:"group,attr"`
	RequiredFilesystem Filesystem    `xml:"requiredfilesystem,attr"`
	EncryptionEnabled  Flag          `xml:"encryptionenabled,attr"`
	DiskEncrypted      Flag          `xml:"diskencrypted,attr"`
}

// UsedSize returns the number of bytes in use.
func (d DiskInfo) UsedSize() uint64 {
	if d.FreeSize > d.TotalSize {
		return 0
	}
	return d.TotalSize - d.FreeSize
}

// List returns every disk the device knows about.
func (d *DiskManagement) List(ctx context.Context) ([]DiskInfo, error) {
	var doc struct {
		Disks struct {
			Disk []DiskInfo `xml:"disk"`
		} `xml:"disks"`
	}

	query := url.Values{"diskid": {"all"}}.Encode()
	if err := d.client.getXML(ctx, diskListPath, query, &doc); err != nil {
		return nil, mapNotFoundToUnsupported(err, "disk management")
	}
	return doc.Disks.Disk, nil
}
