// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and converts non-zero
// exit codes into CommandFailedError values. OSCommandRunner is the os/exec
// backed runner used in production; tests substitute recording runners so
// that no real git binary is needed.
package execshell
