// Package module defines the contract between compiled code and the host: a Module
// exposes an explicit registry of EntryTypes keyed by declared name, and a ScriptEntry
// EntryType constructs a Script.
package module
