/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sigpipe.go
Description: Process-wide SIGPIPE masking so a crashed persistent oracle server
surfaces as an EPIPE write error instead of terminating the driver.
*/

package oracle

import (
	"os/signal"
	"syscall"
)

func ignoreSIGPIPE() {
	signal.Ignore(syscall.SIGPIPE)
}
