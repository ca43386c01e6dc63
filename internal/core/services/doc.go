// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The process-wide registries live here too: ConfigResolver caches
// project configuration and SessionPool owns one transform session per
// project. Both are constructed once by the composition root and passed
// by reference to the services that need them.
package services
