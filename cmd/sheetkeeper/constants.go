package main

// DefaultSession is the initiative session used by 'play' when none is given.
const DefaultSession = "local"

// Valid export formats.
var validFormats = []string{"json", "csv", "markdown"}
