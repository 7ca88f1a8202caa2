// Package secure keeps the AWS secret access key out of ordinary heap memory.
//
// It wraps the memguard library. A SecureBuffer holds the secret encrypted
// (XSalsa20Poly1305) in a memguard enclave; the plaintext only exists inside
// a locked, guard-paged buffer between Open and Destroy.
//
// # Usage
//
//	buf, err := secure.ReadLine(os.Stdin)
//	if err != nil {
//	    return err
//	}
//	defer buf.Destroy()
//
//	locked, err := buf.Open()
//	if err != nil {
//	    return err
//	}
//	defer locked.Destroy()
//	use(locked.Bytes())
//
// Call Purge before the process exits to wipe every enclave key.
//
// # Platform Behavior
//
// On Linux mlock is bounded by RLIMIT_MEMLOCK. When locking fails memguard
// falls back to ordinary memory; the data is still encrypted at rest.
package secure
