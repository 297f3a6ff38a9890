// Package pincode drives the PIN entry prompt shown for parental checks and
// PIN changes.
//
// A Manager owns the single session slot: one prompt workflow may be live at
// a time, and a second open request is rejected rather than queued. The
// workflow itself is a state machine over the prompt modes. A relay close
// carries the code the viewer typed and either finishes the session or
// re-opens the prompt with a retry marker; a close of any other type ends
// the session with matched=false no matter how far the workflow got.
//
// PIN changes run set_match, set_newpin, set_verify in order and commit the
// verified code to the settings service, so the new PIN is only persisted
// after the viewer typed it twice.
package pincode
