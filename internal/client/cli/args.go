package cli

import "strings"

// flagsWithValue are the config flags that consume the following argument.
var flagsWithValue = map[string]bool{"-a": true, "-t": true, "-c": true, "-config": true}

// CommandArgs drops config flags (and their values) from args and returns
// what is left: the command name and its arguments.
func CommandArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			if flagsWithValue[arg] && i+1 < len(args) {
				i++
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}
