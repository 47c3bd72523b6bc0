// Package platform parses and normalises build targets.
//
// A [Target] is a single OS/architecture pair such as "linux/amd64" or
// "linux/arm/v7". Targets are parsed with containerd's platform parser and
// normalised, so "linux/aarch64" and "linux/arm64/v8" both become
// "linux/arm64". A [Set] is the ordered, de-duplicated, non-empty list of
// targets a publish build is run against.
//
// Example usage:
//
//	set, err := platform.ParseSet([]string{"linux/amd64", "linux/arm64"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(set) // linux/amd64,linux/arm64
package platform
