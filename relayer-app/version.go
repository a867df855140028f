package main

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X main.Version=v1.2.3 -X main.BuildTime=... -X main.GitCommit=..."
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
