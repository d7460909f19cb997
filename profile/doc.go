// Package profile describes FRAM device variants.
//
// A Profile carries the capacity and address width of one part. The driver
// validates addresses against Capacity and masks encoded addresses with
// AddressMask, so several variants can be driven side by side.
//
// Built-in profiles cover the FM25V parts that use a three-byte address:
//
//	p, ok := profile.Lookup("FM25V20A")
//
// Additional parts can be described in a YAML file:
//
//	set, err := profile.Parse("profiles.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := set.Lookup("CY15B104Q")
package profile
