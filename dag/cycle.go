package dag

import "github.com/forbearing/flowquery/sqlerr"

// validateNoCycles runs a DFS from target, carrying the current path as
// a set; reaching an in-path node raises configuration_error, exactly as
// the original implementation's validate_no_cycles. confirmedAcyc memoizes
// per node so repeated validation (e.g. from multiple targets sharing a
// DAG) stays O(N).
func (d *DAG) validateNoCycles(target string) error {
	path := make(map[string]struct{})
	return d.dfsCheck(target, path)
}

func (d *DAG) dfsCheck(name string, path map[string]struct{}) error {
	n, ok := d.Nodes[name]
	if !ok {
		return sqlerr.ConfigurationError("model %q references unknown dependency", name)
	}
	if n.confirmedAcyc {
		return nil
	}
	if _, inPath := path[name]; inPath {
		return sqlerr.ConfigurationError("cycle in model dependency graph at %q", name)
	}
	path[name] = struct{}{}
	for up := range n.Upstreams {
		if err := d.dfsCheck(up, path); err != nil {
			return err
		}
	}
	delete(path, name)
	n.confirmedAcyc = true
	return nil
}
