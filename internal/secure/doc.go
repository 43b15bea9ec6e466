// Package secure keeps a secret typed at a prompt encrypted in memory until
// it is needed.
//
// Values are held in a memguard enclave (XSalsa20Poly1305, mlock where the
// platform allows it). The bytes handed to Protect are wiped immediately.
//
//	v := secure.Protect(typed)
//	defer v.Destroy()
//
//	plain, err := v.Reveal()
//
// Reveal necessarily returns a Go string: the secrets blob is encoded from
// ordinary strings, so the plaintext leaves the enclave once per write.
// main calls memguard.Purge on exit to wipe any remaining enclaves.
package secure
