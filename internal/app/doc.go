// Package app contains the core application logic. It defines the App
// struct, its configuration, and the execution lifecycle that loads bore
// files and writes impedance, dump or conversion output, decoupled from
// any specific entrypoint like a CLI.
package app
