package commands

// ClientContextKey is used for storing the client in context for commands.
// The root command only creates a client when none is stored under this key.
var ClientContextKey = &struct{}{}

type loggerContextKey struct{}
