package mathpad

// Node is an expression AST node. Nodes are immutable once built; rewrites
// (Substitute) allocate new nodes and share unchanged subtrees.
type Node interface {
	isNode()
}

// NumberNode is a numeric literal.
type NumberNode struct {
	Value float64
}

// VariableNode is a name reference.
type VariableNode struct {
	Name string
	Line int
	Col  int
}

// UnaryNode applies a prefix operator to its operand.
type UnaryNode struct {
	Op      TokenType // MINUS, PLUS, TILDE, BANG
	Operand Node
}

// BinaryNode applies an infix operator.
type BinaryNode struct {
	Op    TokenType
	Left  Node
	Right Node
}

// CallNode is a function call by name.
type CallNode struct {
	Name string
	Args []Node
	Line int
	Col  int
}

func (*NumberNode) isNode()   {}
func (*VariableNode) isNode() {}
func (*UnaryNode) isNode()    {}
func (*BinaryNode) isNode()   {}
func (*CallNode) isNode()     {}

// WalkVars calls fn for every VariableNode in the tree, left to right.
func WalkVars(n Node, fn func(*VariableNode)) {
	switch t := n.(type) {
	case *VariableNode:
		fn(t)
	case *UnaryNode:
		WalkVars(t.Operand, fn)
	case *BinaryNode:
		WalkVars(t.Left, fn)
		WalkVars(t.Right, fn)
	case *CallNode:
		for _, a := range t.Args {
			WalkVars(a, fn)
		}
	}
}

// Substitute returns the tree with every reference to name replaced by repl.
// Unaffected subtrees are shared, not copied.
func Substitute(n Node, name string, repl Node) Node {
	switch t := n.(type) {
	case *VariableNode:
		if t.Name == name {
			return repl
		}
		return t
	case *UnaryNode:
		op := Substitute(t.Operand, name, repl)
		if op == t.Operand {
			return t
		}
		return &UnaryNode{Op: t.Op, Operand: op}
	case *BinaryNode:
		l := Substitute(t.Left, name, repl)
		r := Substitute(t.Right, name, repl)
		if l == t.Left && r == t.Right {
			return t
		}
		return &BinaryNode{Op: t.Op, Left: l, Right: r}
	case *CallNode:
		changed := false
		args := make([]Node, len(t.Args))
		for i, a := range t.Args {
			args[i] = Substitute(a, name, repl)
			if args[i] != a {
				changed = true
			}
		}
		if !changed {
			return t
		}
		return &CallNode{Name: t.Name, Args: args, Line: t.Line, Col: t.Col}
	default:
		return n
	}
}
