package simplex

import logging "github.com/op/go-logging"

// Logger returns the logger for module "simplex:<name>". Until the program
// installs its own backend with logging.SetBackend, the module only emits
// WARNING and above.
func Logger(name string) *logging.Logger {
	module := "simplex:" + name
	logging.SetLevel(logging.WARNING, module)
	return logging.MustGetLogger(module)
}
