// Package urls holds the documentation links printed in troubleshooting
// output, so they can be updated in one place.
//
//	fmt.Printf("For more information, see: %s\n", urls.VAPIXLibrary)
package urls
