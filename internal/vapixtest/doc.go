// Package vapixtest records and replays conversations with VAPIX devices so
// that tests run against many firmware generations without the hardware.
//
// # Modes
//
// A test device is in one of three modes:
//
//   - Replaying: requests are answered from a fixture file. A request whose
//     shape was never recorded fails with a *MismatchError, which wraps
//     vapix.ErrFixtureMismatch.
//   - Recording: requests go to a live device and every final exchange is
//     kept. The capture is written to "<serial> v<firmware>.yaml" unless that
//     file already exists.
//   - Live: requests go to a live device and nothing is kept.
//
// # Matching
//
// Replay matches requests by Shape: method, path, query parameters sorted by
// name, the normalized Accept and Content-Type headers and a SHA-256 digest
// of the body. Authorization never takes part, and the 401 leg of a
// challenge is never recorded, so fixtures hold no nonces and replay needs
// no authentication.
//
// # Writing Tests
//
//	func TestDiskList(t *testing.T) {
//	    vapixtest.Run(t, func(t *testing.T, dev *vapixtest.Device) error {
//	        services, err := dev.Client.Services(context.Background())
//	        if err != nil {
//	            return err
//	        }
//	        if services.DiskManagement == nil {
//	            return vapix.NewUnsupportedError("disk management")
//	        }
//	        _, err = services.DiskManagement.List(context.Background())
//	        return err
//	    })
//	}
//
// Fixtures are read from testdata/fixtures next to the test, or from
// VAPIX_FIXTURE_DIR. Setting VAPIX_TEST_DEVICE to a device URL adds that
// device to every Run; VAPIX_TEST_MODE=live disables recording.
//
// # Fixture Format
//
// Fixtures are YAML and may be edited by hand:
//
//	device:
//	  model: AXIS M1065-L
//	  serial_number: ACCC8E000001
//	  firmware_version: 9.80.1
//	exchanges:
//	  - request:
//	      method: GET
//	      path: /axis-cgi/param.cgi
//	      query: action=list&group=root.Brand
//	      headers:
//	        accept: text/plain
//	    response:
//	      status: 200
//	      headers:
//	        content-type: text/plain
//	      body:
//	        text: |
//	          root.Brand.Brand=AXIS
package vapixtest
