package termwise

// Version is the termwise release reported by the CLI and the MCP server.
const Version = "0.3.0"
