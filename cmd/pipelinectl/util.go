package main

import "os"

// cmdOut is the single output sink for command results; it always returns
// os.Stdout.
func cmdOut() *os.File { return os.Stdout }
