// Package keygen generates RSA key pairs for SSH authentication.
//
// Keys are produced in PEM format (private) and OpenSSH authorized_keys
// format (public). The VM wizard uses them to seed cloud-init with a fresh
// key when the user has none.
package keygen
