package urls

// Documentation on the Axis developer site.

// VAPIXLibrary indexes the VAPIX HTTP APIs, including API discovery and
// parameter management.
const VAPIXLibrary = "https://developer.axis.com/vapix/"

// ACAPDocs covers building and installing application packages (.eap).
const ACAPDocs = "https://developer.axis.com/acap/"
