// Package parsejson decodes a JSON encoding of parsetree.Program. It
// stands in for the concrete-syntax parser §1 names as an external
// collaborator: this module owns no lexer or grammar, but cmd/quackc
// still needs a concrete way to hand the builder a parse tree, so the
// JSON shape here plays that collaborator's role for this repo,
// following the same json.Decoder-over-a-tagged-shape technique
// internal/catalog uses to load the built-in class catalog.
package parsejson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/funvibe/quackc/internal/parsetree"
)

type rawArg struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type rawClass struct {
	Name    string          `json:"name"`
	Super   string          `json:"super"`
	Args    []rawArg        `json:"args"`
	Ctor    []rawStmt       `json:"ctor"`
	Methods []rawMethodDecl `json:"methods"`
}

type rawMethodDecl struct {
	Name string    `json:"name"`
	Args []rawArg  `json:"args"`
	Ret  string    `json:"ret"`
	Body []rawStmt `json:"body"`
}

type rawProgram struct {
	Classes []rawClass `json:"classes"`
	Bare    []rawStmt  `json:"bare"`
}

// rawStmt and rawExpr carry a discriminating "kind" plus whichever
// fields that kind needs; unused fields are simply left at their zero
// value in the json.RawMessage-free direct-decode approach below.
type rawStmt struct {
	Kind     string    `json:"kind"`
	Target   *rawExpr  `json:"target,omitempty"`
	Declared string    `json:"declared,omitempty"`
	Value    *rawExpr  `json:"value,omitempty"`
	Cond     *rawExpr  `json:"cond,omitempty"`
	Then     []rawStmt `json:"then,omitempty"`
	Else     []rawStmt `json:"else,omitempty"`
	Body     []rawStmt `json:"body,omitempty"`
	Arms     []rawArm  `json:"arms,omitempty"`
}

type rawArm struct {
	Binder string    `json:"binder"`
	Type   string    `json:"type"`
	Body   []rawStmt `json:"body"`
}

type rawExpr struct {
	Kind   string     `json:"kind"`
	Value  *rawValue  `json:"value,omitempty"`
	Name   string     `json:"name,omitempty"`
	Recv   *rawExpr   `json:"recv,omitempty"`
	Method string     `json:"method,omitempty"`
	Args   []rawExpr  `json:"args,omitempty"`
	Class  string     `json:"class,omitempty"`
	Op     string     `json:"op,omitempty"`
	Left   *rawExpr   `json:"left,omitempty"`
	Right  *rawExpr   `json:"right,omitempty"`
	X      *rawExpr   `json:"x,omitempty"`
	Type   string     `json:"type,omitempty"`
}

// rawValue handles the "value" field of int/string/bool literals, whose
// Go type varies by literal kind.
type rawValue struct {
	Int    *int64
	String *string
	Bool   *bool
}

func (v *rawValue) UnmarshalJSON(data []byte) error {
	var asInt int64
	if err := json.Unmarshal(data, &asInt); err == nil {
		v.Int = &asInt
		return nil
	}
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		v.Bool = &asBool
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		v.String = &asString
		return nil
	}
	return fmt.Errorf("parsejson: unsupported literal value %s", data)
}

// Decode reads a JSON-encoded program from r and builds the
// parsetree.Program the astbuild package consumes.
func Decode(r io.Reader) (*parsetree.Program, error) {
	var raw rawProgram
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsejson: decoding: %w", err)
	}

	prog := &parsetree.Program{}
	for _, rc := range raw.Classes {
		cls, err := decodeClass(rc)
		if err != nil {
			return nil, err
		}
		prog.Classes = append(prog.Classes, cls)
	}
	bare, err := decodeStmts(raw.Bare)
	if err != nil {
		return nil, err
	}
	prog.Bare = bare
	return prog, nil
}

func decodeArgs(raw []rawArg) []parsetree.Arg {
	out := make([]parsetree.Arg, 0, len(raw))
	for _, a := range raw {
		out = append(out, parsetree.Arg{Name: a.Name, Type: a.Type})
	}
	return out
}

func decodeClass(rc rawClass) (*parsetree.Class, error) {
	ctor, err := decodeStmts(rc.Ctor)
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", rc.Name, err)
	}
	cls := &parsetree.Class{
		Name:      rc.Name,
		Super:     rc.Super,
		Args:      decodeArgs(rc.Args),
		CtorStmts: ctor,
	}
	for _, rm := range rc.Methods {
		body, err := decodeStmts(rm.Body)
		if err != nil {
			return nil, fmt.Errorf("class %s method %s: %w", rc.Name, rm.Name, err)
		}
		cls.Methods = append(cls.Methods, &parsetree.Method{
			Name: rm.Name,
			Args: decodeArgs(rm.Args),
			Ret:  rm.Ret,
			Body: body,
		})
	}
	return cls, nil
}

func decodeStmts(raw []rawStmt) ([]parsetree.Stmt, error) {
	out := make([]parsetree.Stmt, 0, len(raw))
	for _, rs := range raw {
		s, err := decodeStmt(rs)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeStmt(rs rawStmt) (parsetree.Stmt, error) {
	switch rs.Kind {
	case "assign":
		target, err := decodeExpr(rs.Target)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(rs.Value)
		if err != nil {
			return nil, err
		}
		return &parsetree.AssignStmt{Target: target, Declared: rs.Declared, Value: value}, nil
	case "expr":
		value, err := decodeExpr(rs.Value)
		if err != nil {
			return nil, err
		}
		return &parsetree.ExprStmt{Value: value}, nil
	case "if":
		cond, err := decodeExpr(rs.Cond)
		if err != nil {
			return nil, err
		}
		thenStmts, err := decodeStmts(rs.Then)
		if err != nil {
			return nil, err
		}
		var elseStmts []parsetree.Stmt
		if rs.Else != nil {
			elseStmts, err = decodeStmts(rs.Else)
			if err != nil {
				return nil, err
			}
		}
		return &parsetree.IfStmt{Cond: cond, Then: thenStmts, Else: elseStmts}, nil
	case "while":
		cond, err := decodeExpr(rs.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(rs.Body)
		if err != nil {
			return nil, err
		}
		return &parsetree.WhileStmt{Cond: cond, Body: body}, nil
	case "return":
		value, err := decodeExpr(rs.Value)
		if err != nil {
			return nil, err
		}
		return &parsetree.ReturnStmt{Value: value}, nil
	case "typecase":
		x, err := decodeExpr(rs.Value)
		if err != nil {
			return nil, err
		}
		arms := make([]parsetree.TypecaseArm, 0, len(rs.Arms))
		for _, a := range rs.Arms {
			body, err := decodeStmts(a.Body)
			if err != nil {
				return nil, err
			}
			arms = append(arms, parsetree.TypecaseArm{Binder: a.Binder, Type: a.Type, Body: body})
		}
		return &parsetree.TypecaseStmt{X: x, Arms: arms}, nil
	default:
		return nil, fmt.Errorf("parsejson: unknown statement kind %q", rs.Kind)
	}
}

func decodeExpr(re *rawExpr) (parsetree.Expr, error) {
	if re == nil {
		return nil, fmt.Errorf("parsejson: missing expression")
	}
	switch re.Kind {
	case "int":
		if re.Value == nil || re.Value.Int == nil {
			return nil, fmt.Errorf("parsejson: int literal missing integer value")
		}
		return &parsetree.IntExpr{Value: *re.Value.Int}, nil
	case "string":
		if re.Value == nil || re.Value.String == nil {
			return nil, fmt.Errorf("parsejson: string literal missing string value")
		}
		return &parsetree.StringExpr{Value: *re.Value.String}, nil
	case "bool":
		if re.Value == nil || re.Value.Bool == nil {
			return nil, fmt.Errorf("parsejson: bool literal missing bool value")
		}
		return &parsetree.BoolExpr{Value: *re.Value.Bool}, nil
	case "name":
		return &parsetree.NameExpr{Name: re.Name}, nil
	case "thisfield":
		return &parsetree.ThisFieldExpr{Name: re.Name}, nil
	case "field":
		recv, err := decodeExpr(re.Recv)
		if err != nil {
			return nil, err
		}
		return &parsetree.FieldExpr{Recv: recv, Name: re.Name}, nil
	case "call":
		recv, err := decodeExpr(re.Recv)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(re.Args)
		if err != nil {
			return nil, err
		}
		return &parsetree.CallExpr{Recv: recv, Method: re.Method, Args: args}, nil
	case "new":
		args, err := decodeExprs(re.Args)
		if err != nil {
			return nil, err
		}
		return &parsetree.ConstructorExpr{Class: re.Class, Args: args}, nil
	case "binary":
		left, err := decodeExpr(re.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(re.Right)
		if err != nil {
			return nil, err
		}
		return &parsetree.BinaryExpr{Op: parsetree.BinaryOp(re.Op), Left: left, Right: right}, nil
	case "unary":
		x, err := decodeExpr(re.X)
		if err != nil {
			return nil, err
		}
		return &parsetree.UnaryExpr{Op: parsetree.UnaryOp(re.Op), X: x}, nil
	case "isinstance":
		x, err := decodeExpr(re.X)
		if err != nil {
			return nil, err
		}
		return &parsetree.IsInstanceExpr{X: x, Type: re.Type}, nil
	default:
		return nil, fmt.Errorf("parsejson: unknown expression kind %q", re.Kind)
	}
}

func decodeExprs(raw []rawExpr) ([]parsetree.Expr, error) {
	out := make([]parsetree.Expr, 0, len(raw))
	for i := range raw {
		e, err := decodeExpr(&raw[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
