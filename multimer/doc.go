// Package multimer arranges molecular subunits into complexes: ring
// assemblies built from a template, per-subunit chain assignment, and
// whole-complex measures such as total mass, radius of gyration, and
// interface contacts between subunits.
package multimer
