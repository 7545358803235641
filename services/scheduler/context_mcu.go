//go:build rp2040 || rp2350

package scheduler

// Channel operations are not interrupt-safe under TinyGo.
const kickEnabled = false
