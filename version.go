package acheron

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/aretw0/acheron.Version=...".
var Version = "0.3.0-dev"
