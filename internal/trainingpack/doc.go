// Package trainingpack decodes the bit-packed training pack metadata blob that
// the game plugin attaches to every uploaded pack.
//
// The blob is a Base64 encoded bitstream read MSB-first. A variable-length
// header declares the pack name, shot count, per-column minimums and bit
// widths; the columns that follow store every shot's values delta-coded
// against those minimums, 3D vectors quantized to 16 bits per axis, and
// boolean flags one bit each. Decode turns the blob into a Pack whose Shots
// slice always holds exactly ShotCount records, or fails with a *DecodeError.
//
// Strict mode, the default, fails with TruncatedStream on the first read past
// the end of the buffer. Permissive mode reads those bits as zero but drops
// any entry they would have produced, so a truncated pack still fails, as
// ArrayLength or HeaderRange. Permissive mode never yields zero-filled shots,
// and a pack it accepts is identical to the strict result.
//
// Decoding is pure: no I/O, no logging, no shared state. Callers that want
// visibility into the field layout attach a trace observer with WithTrace.
// Only the final format revision (with angular velocity columns) is
// understood; its constants are collected in Current.
package trainingpack
