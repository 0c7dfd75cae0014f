package molecule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/biobox/chem"
	"github.com/tsawler/biobox/pdb"
)

// Select evaluates an atom selection query and returns the matching
// atom indices in ascending order.
//
// The query language combines primitives with boolean operators:
//
//	chain A B            atoms in chain A or B
//	name CA CB           atom names
//	resname ALA GLY      residue names
//	resid 10:40          residue number range (inclusive), or a list
//	element C N          element symbols
//	protein              standard amino acid residues
//	water                water residues
//	backbone             protein backbone atoms
//	hetatm               HETATM records
//	hydrogen             hydrogen atoms
//	all                  every atom
//
// Primitives compose with and, or, not, and parentheses:
//
//	indices, err := m.Select("chain A and name CA and not resname GLY")
func (m *Molecule) Select(query string) ([]int, error) {
	p := &selParser{tokens: tokenizeQuery(query)}
	pred, err := p.parseExpr()
	if err != nil {
		return nil, fmt.Errorf("bad selection %q: %w", query, err)
	}
	if !p.done() {
		return nil, fmt.Errorf("bad selection %q: unexpected %q", query, p.peek())
	}

	var indices []int
	for i, a := range m.Atoms {
		if pred(a) {
			indices = append(indices, i)
		}
	}
	return indices, nil
}

// SelectSubset is shorthand for Select followed by Subset.
func (m *Molecule) SelectSubset(query string) (*Molecule, error) {
	indices, err := m.Select(query)
	if err != nil {
		return nil, err
	}
	return m.Subset(indices)
}

type atomPred func(pdb.Atom) bool

func tokenizeQuery(query string) []string {
	query = strings.ReplaceAll(query, "(", " ( ")
	query = strings.ReplaceAll(query, ")", " ) ")
	return strings.Fields(query)
}

// selParser is a recursive-descent parser over the query tokens with
// precedence not > and > or.
type selParser struct {
	tokens []string
	pos    int
}

func (p *selParser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *selParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *selParser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *selParser) parseExpr() (atomPred, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for strings.EqualFold(p.peek(), "or") {
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		l, r := left, right
		left = func(a pdb.Atom) bool { return l(a) || r(a) }
	}
	return left, nil
}

func (p *selParser) parseTerm() (atomPred, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for strings.EqualFold(p.peek(), "and") {
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		l, r := left, right
		left = func(a pdb.Atom) bool { return l(a) && r(a) }
	}
	return left, nil
}

func (p *selParser) parseFactor() (atomPred, error) {
	switch tok := p.peek(); {
	case tok == "":
		return nil, fmt.Errorf("unexpected end of query")

	case strings.EqualFold(tok, "not"):
		p.next()
		inner, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return func(a pdb.Atom) bool { return !inner(a) }, nil

	case tok == "(":
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.next() != ")" {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		return inner, nil

	default:
		return p.parsePrimitive()
	}
}

// keyword set terminating a primitive's value list.
func isKeyword(tok string) bool {
	switch strings.ToLower(tok) {
	case "and", "or", "not", "(", ")",
		"chain", "name", "resname", "resid", "element",
		"protein", "water", "backbone", "hetatm", "hydrogen", "all":
		return true
	}
	return false
}

func (p *selParser) parsePrimitive() (atomPred, error) {
	keyword := strings.ToLower(p.next())

	switch keyword {
	case "protein":
		return func(a pdb.Atom) bool { return chem.IsStandardResidue(a.ResName) }, nil
	case "water":
		return func(a pdb.Atom) bool { return chem.IsWater(a.ResName) }, nil
	case "backbone":
		return func(a pdb.Atom) bool {
			return chem.IsStandardResidue(a.ResName) && chem.IsBackbone(a.Name)
		}, nil
	case "hetatm":
		return func(a pdb.Atom) bool { return a.Hetatm }, nil
	case "hydrogen":
		return func(a pdb.Atom) bool { return strings.EqualFold(a.Element, "H") }, nil
	case "all":
		return func(pdb.Atom) bool { return true }, nil
	}

	values := p.values()
	if len(values) == 0 {
		return nil, fmt.Errorf("%s needs at least one value", keyword)
	}

	switch keyword {
	case "chain":
		set := stringSet(values)
		return func(a pdb.Atom) bool { return set[strings.ToUpper(a.Chain)] }, nil
	case "name":
		set := stringSet(values)
		return func(a pdb.Atom) bool { return set[strings.ToUpper(a.Name)] }, nil
	case "resname":
		set := stringSet(values)
		return func(a pdb.Atom) bool { return set[strings.ToUpper(a.ResName)] }, nil
	case "element":
		set := stringSet(values)
		return func(a pdb.Atom) bool { return set[strings.ToUpper(a.Element)] }, nil
	case "resid":
		return residPred(values)
	default:
		return nil, fmt.Errorf("unknown keyword %q", keyword)
	}
}

// values consumes tokens until the next keyword.
func (p *selParser) values() []string {
	var out []string
	for !p.done() && !isKeyword(p.peek()) {
		out = append(out, p.next())
	}
	return out
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToUpper(v)] = true
	}
	return set
}

// residPred builds a predicate from residue numbers and colon ranges.
func residPred(values []string) (atomPred, error) {
	type span struct{ lo, hi int }
	var spans []span
	for _, v := range values {
		if lo, hi, ok := strings.Cut(v, ":"); ok {
			a, err1 := strconv.Atoi(lo)
			b, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("bad resid range %q", v)
			}
			if b < a {
				a, b = b, a
			}
			spans = append(spans, span{a, b})
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("bad resid %q", v)
		}
		spans = append(spans, span{n, n})
	}
	return func(a pdb.Atom) bool {
		for _, s := range spans {
			if a.ResSeq >= s.lo && a.ResSeq <= s.hi {
				return true
			}
		}
		return false
	}, nil
}
