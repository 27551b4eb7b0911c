package parameters

import "github.com/forbearing/flowquery/sqlerr"

func configErrUnknownParameter(name string) error {
	return sqlerr.ConfigurationError("unknown parameter %q", name)
}

func invalidInputTooManyKeys() error {
	return sqlerr.InvalidInput("the updates endpoint accepts at most one selection key alongside x_parent_param")
}
