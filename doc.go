/*
Package acheron is a narrative graph engine for red-team simulation games.

A scenario ("mission") is a graph of nodes joined by labeled choices. The
player starts at the scenario's start node and picks choices until a node
resolves the session to won or failed. The engine tracks the path taken,
scores choices for hints, estimates how deep the graph goes, rotates between
the missions of a mission pack and saves the session after every change.

# Concept

The engine follows a hexagonal layout. Scenario documents come from
internal/loader (JSON or YAML, single scenario or mission pack), saved
sessions go through a ports.KVStore adapter (memory, file or Redis), and
frontends (the terminal Runner, the HTTP API, the MCP server) only talk to
Engine.

Transitions are data-driven edges only; there is no scripting.

# Usage

	ctx := context.Background()
	eng, err := acheron.Open(ctx, "scenario.json",
		acheron.WithStore(file.New(".acheron/saves")),
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(eng.Briefing())
	for {
		snap := eng.Snapshot()
		if snap.State.Status.IsTerminal() {
			break
		}
		fmt.Println(snap.Node.Text)
		if err := eng.Choose(ctx, 0); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Print(eng.ExportReport())

Persistence failures never stop play. They are logged, reported through
LifecycleHooks.OnPersistError and exposed by LastError, and the engine keeps
going with the in-memory session.
*/
package acheron
