// Package prompt is the interactive front end of the creation wizards.
//
// A [Session] walks a wizard step by step. Each step is shown as a huh
// form whose answers are applied through the wizard's actions; when the
// step does not validate, the messages are printed and the step is asked
// again. The review step ends with a confirmation and the submission runs
// behind a spinner. Without a terminal the forms run in huh's accessible
// mode and the spinner is skipped.
package prompt
