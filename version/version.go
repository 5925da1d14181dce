package version

// Version is the current version of glucowatch
const Version = "0.1.0"
