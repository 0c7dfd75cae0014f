// Package assembly groups labeled point clouds into rigid arrangements
// such as rings and stacks, and writes them out as pseudo-atom PDB
// chains.
package assembly
