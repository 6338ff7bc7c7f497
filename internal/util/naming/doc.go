// Package naming derives default names for objects created by the console.
//
// Generated names follow the pattern {kebab-kind}-{5char}; the random
// suffix comes from apimachinery's rand and keeps repeated submissions of
// the same form from colliding.
package naming
