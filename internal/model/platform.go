package model

// Platform identifies the external code host an entity is mirrored from.
type Platform string

const (
	PlatformGitHub Platform = "github"
)
