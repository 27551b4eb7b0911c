package dag

import (
	"context"

	"github.com/forbearing/flowquery/models"
	"github.com/forbearing/flowquery/reqctx"
	"github.com/forbearing/flowquery/sqlerr"
	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"
)

// compileNode renders a SQL model's template or discovers an imperative
// model's dependencies, memoizing the result so concurrent callers
// reaching the same node (from two downstream branches) block on the
// first compilation rather than repeating it, per spec section 4.4.
func compileNode(ctx context.Context, n *Node, rc *reqctx.Context) ([]string, error) {
	n.mu.Lock()
	switch n.state {
	case compileDone:
		n.mu.Unlock()
		return n.dependencies, n.compileErr
	case compileInProgress:
		done := n.done
		n.mu.Unlock()
		<-done
		return n.dependencies, n.compileErr
	}
	n.state = compileInProgress
	n.mu.Unlock()

	deps, err := compileOnce(ctx, n, rc)

	n.mu.Lock()
	n.dependencies = deps
	n.compileErr = err
	n.state = compileDone
	close(n.done)
	n.mu.Unlock()

	return deps, err
}

func compileOnce(ctx context.Context, n *Node, rc *reqctx.Context) ([]string, error) {
	if n.Config.QueryFile == nil {
		return nil, nil // seed/source leaf
	}
	switch qf := n.Config.QueryFile.(type) {
	case models.SQLQueryFile:
		return renderSQL(n, qf, rc)
	case models.ImperativeQueryFile:
		if qf.Dependencies == nil {
			return nil, nil
		}
		deps, err := qf.Dependencies(ctx)
		if err != nil {
			return nil, sqlerr.ExecutionError(n.Name, err)
		}
		return deps, nil
	default:
		return nil, sqlerr.ConfigurationError("model %q has an unrecognized query file type", n.Name)
	}
}

// renderSQL renders a SQL model's template. frame is the
// per-compilation-frame dependency set the ref() hook mutates; it is local
// to one compileOnce call, never global state, per the template-rendering
// design note.
func renderSQL(n *Node, qf models.SQLQueryFile, rc *reqctx.Context) ([]string, error) {
	frame := make(map[string]struct{})
	vars := rc.ToTemplateVars()
	vars["ref"] = func(name string) string {
		frame[name] = struct{}{}
		return name
	}

	tpl, err := gonja.FromString(qf.Template)
	if err != nil {
		return nil, sqlerr.ConfigurationErrorWrap(err, "model %q has a malformed template", n.Name)
	}
	rendered, err := tpl.ExecuteToString(exec.NewContext(vars))
	if err != nil {
		return nil, sqlerr.ExecutionError(n.Name, err)
	}
	n.CompiledQuery = rendered

	deps := make([]string, 0, len(frame))
	for name := range frame {
		deps = append(deps, name)
	}
	return deps, nil
}
