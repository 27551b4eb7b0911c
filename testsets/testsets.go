// Package testsets provides the selection test-set helper used by
// package tests to drive a DAG with a fixed user/selection combination
// without going through the HTTP surface. Grounded on the supplemented
// selection-test-sets feature, itself grounded on the original project's
// WriteDatasetOutputsGivenTestSet, minus its CSV/file output plumbing.
package testsets

import (
	"context"

	"github.com/forbearing/flowquery/auth"
	"github.com/forbearing/flowquery/dag"
	"github.com/forbearing/flowquery/models"
	"github.com/forbearing/flowquery/parameters"
	"github.com/forbearing/flowquery/reqctx"
	"github.com/forbearing/flowquery/sqlengine"
)

// TestSet is one fixed scenario: a user's attributes (looked up by
// testUser's Attribute) and a raw selection map to resolve against a
// ConfigSet, per the original selection_test_sets manifest entry shape.
type TestSet struct {
	Name           string
	UserAttributes map[string]any
	Selections     map[string]string
}

// testUser implements auth.User over the flat TestSet.UserAttributes map,
// so a TestSet can stand in for a real Authenticator-issued user.
type testUser struct {
	identity string
	attrs    map[string]any
	level    auth.AccessLevel
}

func (u testUser) Identity() string { return u.identity }

func (u testUser) Attribute(name string) (string, bool) {
	v, ok := u.attrs[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (u testUser) AccessLevel() auth.AccessLevel { return u.level }

// User builds the auth.User a TestSet resolves parameters and runs a DAG
// as, defaulting to AccessUser when UserAttributes carries no override.
func (ts TestSet) User() auth.User {
	level := auth.AccessUser
	if lv, ok := ts.UserAttributes["access_level"].(int); ok {
		level = auth.AccessLevel(lv)
	}
	return testUser{identity: "testset:" + ts.Name, attrs: ts.UserAttributes, level: level}
}

// RunTestSet resolves params against configs under the test set's user
// and selections, builds the DAG for target in registry, executes it
// against conn, and returns the target's materialized result.
func RunTestSet(ctx context.Context, ts TestSet, configs *parameters.ConfigSet, registry *models.Registry, target string, conn sqlengine.Connection, projVars, envVars map[string]any) (sqlengine.Table, error) {
	user := ts.User()
	params, err := configs.Resolve(nil, ts.Selections, user)
	if err != nil {
		return sqlengine.Table{}, err
	}

	rc := reqctx.New(projVars, envVars, params, user, nil)
	d, err := dag.Build(ctx, target, registry, rc, "")
	if err != nil {
		return sqlengine.Table{}, err
	}
	if err := d.Execute(ctx, conn); err != nil {
		return sqlengine.Table{}, err
	}
	result, _ := d.Result(target)
	return result, nil
}
