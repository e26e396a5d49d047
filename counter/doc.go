/*
Package counter counts tracked objects crossing a virtual border line.

Each frame the Engine passes detections to a Tracker, remembers the box of
every returned identity and compares it with the box remembered from the
previous processed frame.  When the line between the two box centers crosses
the border, every counter whose direction.Spec accepts the motion is
incremented.  One physical crossing may therefore increment several counters,
but the Notifier is called once for the frame with all counter values.

Frames for which the tracker returns no tracks are a no-op: counters,
position memory and the retention clock are left untouched.
*/
package counter
