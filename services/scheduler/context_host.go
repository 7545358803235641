//go:build !(rp2040 || rp2350)

package scheduler

const kickEnabled = true
