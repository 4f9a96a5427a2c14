package utils

// NODETOL is the absolute tolerance below which two coordinates (or a
// bounding-box extent) are treated as equal, per the teacher's own mesh
// geometry code. sfc.gridCoord uses it to guard against dividing by a
// near-zero bounding-box extent on a degenerate axis.
const NODETOL = 1.e-12
