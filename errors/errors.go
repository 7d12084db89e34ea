package errors

import "fmt"

var (
	ErrNotConnected    = fmt.Errorf("not connected to chat server")
	ErrNoCurrentRoom   = fmt.Errorf("no current room")
	ErrNoCredential    = fmt.Errorf("no credential available")
	ErrChatDisabled    = fmt.Errorf("chat is disabled for this auction")
	ErrRetryExhausted  = fmt.Errorf("reconnect attempts exhausted")
	ErrStaleGeneration = fmt.Errorf("stale room generation")
	ErrEmptyMessage    = fmt.Errorf("message body is empty")
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrEmptyWords      = fmt.Errorf("no words have been found")
)
