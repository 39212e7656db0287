// Package library manages directories of canonical spectrum files.
//
// A Library maps spectrum names to "<dir>/<name>.txt"; membership is simply
// file presence, so Names always reflects the directory as it is now. Two
// libraries exist per installation: end-members (the reference spectra) and
// mixed spectra (the samples to unmix).
//
// Mutating operations (Import, Remove, Rename) hold an exclusive advisory
// lock on "<dir>/.specmix.lock" for their duration so concurrent specmix
// processes never interleave writes to the same library. Reads take no lock;
// canonical files are replaced atomically.
package library
