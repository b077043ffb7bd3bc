/*
Package dsl provides a Go DSL for building Acheron scenarios in code.

It is an alternative to JSON or YAML documents, useful for generated
missions and for tests.

Example usage:

	b := dsl.New("Kiosk Breakout").ID("kiosk")

	b.Add("Q1").
		Text("You sit at a locked kiosk.").
		Choice("Check local permissions", "Q2").
		Failure("Brute force the admin PIN", "Q3")

	b.Add("Q2").Text("Domain admin reached.").Wins().Flag("FLAG{kiosk}")
	b.Add("Q3").Text("Lockout. You are detected.").Fails()

	scenario, err := b.Build()
	// ... engine.Load(ctx, dsl.Single(scenario))
*/
package dsl
