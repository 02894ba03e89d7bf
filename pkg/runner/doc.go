/*
Package runner drives a symptom check from a terminal or any line-oriented stream.

The Runner owns the loop: render the current state, hand the actions to an
IOHandler, read one line back and turn it into an engine operation. Two
handlers ship with the package:

  - TextHandler prints numbered choices as markdown (optionally rendered to
    ANSI) and understands the ":lang <code>", ":restart" and "exit" commands.
  - JSONHandler speaks JSON lines for headless hosts and scripted tests.

Language changes travel through an i18n.Broadcaster when one is configured,
so a command typed in the terminal and a toggle elsewhere in the host take
the same path into the engine.

	r := runner.NewRunner(engine,
		runner.WithSessionID("local"),
		runner.WithStore(store),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	final, err := r.Run(ctx)
*/
package runner
