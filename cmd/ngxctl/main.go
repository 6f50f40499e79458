// ngxctl is the operator CLI for ngxmgr.
//
// Usage:
//
//	# Print the configuration composed from the entity store
//	ngxctl render
//
//	# Compose and check the candidate with nginx -t
//	ngxctl validate
//
//	# Compose, check, activate and reload
//	ngxctl apply
//
//	# Certificate state, offline PEM checks and inspection
//	ngxctl certs status
//	ngxctl certs check --cert site.crt --key site.key
//	ngxctl certs inspect site.crt
//
//	# Probe upstreams and the system checks once
//	ngxctl health
package main

func main() {
	Execute()
}
