// Package motion moves a free test charge through the field of fixed point
// charges.
//
// The simulator owns the time loop; Steppers advance one step given an
// acceleration function, and Metrics observe every state. An Environment also
// scans a line for positions where the net force on the test charge vanishes.
package motion
