// Package cli implements the command-line interface of the bootdata tool.
//
// # Commands
//
// The root command collects boot diagnostic data into a single report
// file and uploads it to the lab collection service:
//
//	bootdata -l lab-one -m beagleplay-1
//	bootdata -l lab-one -m beagleplay-1 -d /tmp -s   # collect only
//	bootdata -u boot-data-lab_one-beagleplay_1-260830-120000.txt
//
// analyze - examine a dmesg captured with initcall_debug:
//
//	bootdata analyze --dmesg dmesg.txt
//	dmesg | bootdata analyze --format json -o analysis.json
//
// # Exit Codes
//
//	0  Success (including help/version output)
//	1  Usage error, failed preflight check, collection or upload failure
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/bootlab/bootdata/pkg/version.Version=1.0.0'"
package cli
