package util

import (
	"os"
	"os/signal"
	"syscall"
)

// TrapSignalTerm calls cb once on the first SIGINT or SIGTERM the
// process receives, then returns. Callers typically follow it with a
// blocking wait (e.g. Service.WaitForStop) for the callback's cleanup
// to finish.
func TrapSignalTerm(cb func(sig os.Signal)) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	signal.Stop(c)
	cb(sig)
}
