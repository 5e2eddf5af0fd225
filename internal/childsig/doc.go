// Package childsig coordinates the process-wide disposition of the child
// termination signal (SIGCHLD) between the application and subprocesses
// started to produce configuration.
//
// The application registers its own SIGCHLD channel with Handle, typically a
// loop reaping background processes. While at least one Guard is held, that
// subscription is suspended so the child's exit status is collected by
// exec.Cmd.Wait and not by the application's reaper. The first Acquire
// suspends, the last Release restores.
package childsig
