package platform

import "github.com/pkg/errors"

// New builds one of the named platform presets.
func New(name string) (*Platform, error) {
	switch name {
	case "odroid":
		return MakeBuilder().Build(name), nil
	case "odroid_acc":
		return MakeBuilder().WithNumFFTAcc(2).Build(name), nil
	}

	return nil, errors.Errorf("unknown platform %q", name)
}
