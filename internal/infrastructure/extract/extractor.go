// Package extract implements the FeatureExtractor port. It is purely
// lexical/syntactic: the candidate command is parsed, never executed, and
// path arguments are resolved textually against the configured protected
// set without touching the real filesystem.
package extract

import (
	"bytes"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// Extractor implements ports.FeatureExtractor.
type Extractor struct {
	protected []string
	home      string
	rules     []tagRule
}

// NewExtractor builds an extractor for the given protected-path set. An
// empty set falls back to the built-in defaults; home anchors textual
// expansion of ~ and $HOME.
func NewExtractor(protectedPaths []string, home string) *Extractor {
	if len(protectedPaths) == 0 {
		protectedPaths = defaultProtectedPaths()
	}
	if home == "" {
		home = "~"
	}
	return &Extractor{
		protected: normalizeProtected(protectedPaths, home),
		home:      home,
		rules:     defaultTagRules(),
	}
}

// rawSeg is one simple command lifted out of the shell AST. After sudo
// expansion, name/args describe the effective command and escalated records
// the wrapper.
type rawSeg struct {
	name       string
	args       []string
	text       string
	redirOut   []string
	truncates  bool
	hasSubst   bool
	escalated  bool
	pipeGroup  int
	pipedInput bool
}

// Extract implements ports.FeatureExtractor. It is total: malformed input
// yields a feature set tagged Unparsable instead of an error.
func (e *Extractor) Extract(command string) domain.CommandFeatures {
	features := domain.CommandFeatures{Raw: command}
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return features
	}

	parser := syntax.NewParser()
	file, err := parser.Parse(strings.NewReader(trimmed), "")
	if err != nil {
		features.Segments = []domain.Segment{{
			Text: trimmed,
			Tags: []domain.OperationTag{domain.TagUnparsable},
		}}
		return features
	}

	walker := &segWalker{printer: syntax.NewPrinter(), nextGroup: 1}
	for _, stmt := range file.Stmts {
		walker.collect(stmt, 0)
	}
	if len(walker.segs) == 0 {
		features.Segments = []domain.Segment{{
			Text: trimmed,
			Tags: []domain.OperationTag{domain.TagUnparsable},
		}}
		return features
	}

	segs := walker.segs
	for i := range segs {
		expandWrappers(&segs[i])
	}
	markFetchIntoInterpreter(segs)

	for _, seg := range segs {
		features.Segments = append(features.Segments, e.buildSegment(seg))
	}
	e.applyModifiers(&features, segs)
	e.resolveTargets(&features, segs)
	return features
}

// segWalker flattens the AST into rawSeg values, grouping pipelines so the
// extractor can detect cross-segment patterns like curl|bash.
type segWalker struct {
	printer   *syntax.Printer
	segs      []rawSeg
	nextGroup int
}

func (w *segWalker) collect(stmt *syntax.Stmt, group int) {
	if stmt == nil || stmt.Cmd == nil {
		return
	}
	switch cmd := stmt.Cmd.(type) {
	case *syntax.CallExpr:
		w.addCall(stmt, cmd, group)
	case *syntax.BinaryCmd:
		if cmd.Op == syntax.Pipe || cmd.Op == syntax.PipeAll {
			if group == 0 {
				group = w.nextGroup
				w.nextGroup++
			}
			w.collect(cmd.X, group)
			w.collect(cmd.Y, group)
			return
		}
		// && and || chains break into independent segments.
		w.collect(cmd.X, 0)
		w.collect(cmd.Y, 0)
	case *syntax.Subshell:
		for _, inner := range cmd.Stmts {
			w.collect(inner, group)
		}
	case *syntax.Block:
		for _, inner := range cmd.Stmts {
			w.collect(inner, group)
		}
	default:
		// Control flow, function declarations and the like sit outside the
		// analyzable subset; surface them as an opaque segment the
		// classifier treats cautiously.
		w.segs = append(w.segs, rawSeg{
			text:      w.nodeText(stmt),
			pipeGroup: group,
			hasSubst:  true,
		})
	}
}

func (w *segWalker) addCall(stmt *syntax.Stmt, call *syntax.CallExpr, group int) {
	seg := rawSeg{text: w.nodeText(stmt), pipeGroup: group}
	for i, word := range call.Args {
		lit, sawSubst := wordLit(word)
		seg.hasSubst = seg.hasSubst || sawSubst
		if i == 0 {
			seg.name = lit
			continue
		}
		seg.args = append(seg.args, lit)
	}
	for _, redir := range stmt.Redirs {
		switch redir.Op {
		case syntax.RdrOut, syntax.RdrAll:
			seg.truncates = true
			if lit, _ := wordLit(redir.Word); lit != "" {
				seg.redirOut = append(seg.redirOut, lit)
			}
		case syntax.AppOut, syntax.AppAll:
			if lit, _ := wordLit(redir.Word); lit != "" {
				seg.redirOut = append(seg.redirOut, lit)
			}
		}
	}
	w.segs = append(w.segs, seg)
}

func (w *segWalker) nodeText(node syntax.Node) string {
	var buf bytes.Buffer
	if err := w.printer.Print(&buf, node); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}

// wordLit flattens a word to its literal text, noting command/process
// substitutions that defeat static analysis.
func wordLit(word *syntax.Word) (string, bool) {
	if word == nil {
		return "", false
	}
	var sb strings.Builder
	sawSubst := false
	var visit func(part syntax.WordPart)
	visit = func(part syntax.WordPart) {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				visit(inner)
			}
		case *syntax.ParamExp:
			if p.Param != nil {
				sb.WriteString("$" + p.Param.Value)
			}
		case *syntax.CmdSubst, *syntax.ProcSubst:
			sawSubst = true
		}
	}
	for _, part := range word.Parts {
		visit(part)
	}
	return sb.String(), sawSubst
}

// maxWrapperDepth bounds chained wrappers like "sudo env nice rm".
const maxWrapperDepth = 4

// expandWrappers peels privilege-escalation and transparent wrapper
// commands so the effective command is tagged, not the wrapper:
// "sudo -u root rm -rf /" and "env rm -rf /" both carry the deletion tags.
func expandWrappers(seg *rawSeg) {
	for depth := 0; depth < maxWrapperDepth; depth++ {
		name := baseName(seg.name)
		switch {
		case name == "su":
			// su takes the user positionally and the command as an opaque
			// -c string; neither can be folded statically.
			seg.escalated = true
			if seg.hasLongFlag("-c") || seg.hasLongFlag("--command") {
				seg.hasSubst = true
			}
			seg.args = nil
			return
		case escalationCmds[name]:
			seg.escalated = true
		case transparentWrappers[name]:
		default:
			return
		}
		if !foldWrapped(seg, wrapperValueOpts[name], name == "timeout") {
			seg.args = nil
			return
		}
	}
}

// foldWrapped advances past the wrapper's own options to the wrapped
// command. skipDuration handles timeout's leading duration argument. It
// reports whether a wrapped command was found.
func foldWrapped(seg *rawSeg, valueOpts map[string]bool, skipDuration bool) bool {
	args := seg.args
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			if i+1 < len(args) {
				seg.name = args[i+1]
				seg.args = args[i+2:]
				return true
			}
			return false
		case strings.HasPrefix(arg, "--"):
			if opt, _, hasValue := strings.Cut(arg, "="); !hasValue && valueOpts[opt] {
				i++ // option value follows as a separate argument
			}
		case strings.HasPrefix(arg, "-") && arg != "-":
			if valueOpts[arg] {
				i++
			}
		case strings.Contains(arg, "=") && !strings.Contains(arg, "/"):
			// inline VAR=value assignments sudo and env accept
		case skipDuration:
			skipDuration = false
		default:
			seg.name = arg
			seg.args = args[i+1:]
			return true
		}
	}
	return false
}

// markFetchIntoInterpreter flags pipe groups where a network fetch feeds an
// interpreter. Neither half is dangerous alone; the combination is.
func markFetchIntoInterpreter(segs []rawSeg) {
	type groupInfo struct{ fetch, interp bool }
	groups := map[int]groupInfo{}
	for _, seg := range segs {
		if seg.pipeGroup == 0 {
			continue
		}
		info := groups[seg.pipeGroup]
		name := baseName(seg.name)
		if fetchCmds[name] {
			info.fetch = true
		}
		if interpreterCmds[name] {
			info.interp = true
		}
		groups[seg.pipeGroup] = info
	}
	for i := range segs {
		if info, ok := groups[segs[i].pipeGroup]; ok && info.fetch && info.interp {
			segs[i].pipedInput = true
		}
	}
}

func (e *Extractor) buildSegment(seg rawSeg) domain.Segment {
	out := domain.Segment{Text: seg.text, Name: baseName(seg.name)}
	for _, rule := range e.rules {
		if rule.match(seg) {
			out.Tags = appendTag(out.Tags, rule.tag)
		}
	}
	if seg.pipedInput && (fetchCmds[out.Name] || interpreterCmds[out.Name]) {
		out.Tags = appendTag(out.Tags, domain.TagNetworkExec)
	}
	if seg.hasSubst {
		out.Tags = appendTag(out.Tags, domain.TagUnparsable)
	}
	if len(out.Tags) == 0 && !readOnlyCmds[out.Name] {
		out.Tags = appendTag(out.Tags, domain.TagUnknown)
	}
	for _, target := range seg.targets() {
		out.Targets = append(out.Targets, e.expandTextual(target))
	}
	return out
}

func (e *Extractor) applyModifiers(features *domain.CommandFeatures, segs []rawSeg) {
	for _, seg := range segs {
		if seg.hasShortFlag('r') || seg.hasShortFlag('R') || seg.hasLongFlag("--recursive") {
			features.Modifiers.Recursive = true
		}
		if seg.hasShortFlag('f') || seg.hasLongFlag("--force") {
			features.Modifiers.Force = true
		}
		if seg.truncates {
			features.Modifiers.Overwrite = true
		}
		if seg.pipedInput {
			features.Modifiers.PipedToInterpreter = true
		}
	}
}

func (e *Extractor) resolveTargets(features *domain.CommandFeatures, segs []rawSeg) {
	seen := map[string]bool{}
	for _, segment := range features.Segments {
		for _, target := range segment.Targets {
			if seen[target] {
				continue
			}
			seen[target] = true
			features.Targets = append(features.Targets, target)
			if e.isProtected(target) {
				features.Modifiers.ProtectedPath = true
				features.ProtectedTargets = append(features.ProtectedTargets, target)
			}
			if e.isUnbounded(target) {
				features.UnboundedScope = true
			}
		}
	}
	for _, seg := range segs {
		if seg.hasLongFlag("--no-preserve-root") {
			features.UnboundedScope = true
		}
	}
}

func appendTag(tags []domain.OperationTag, tag domain.OperationTag) []domain.OperationTag {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}

var _ ports.FeatureExtractor = (*Extractor)(nil)
