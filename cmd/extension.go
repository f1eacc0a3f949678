package cmd

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
)

// RunExtension attempts to find and execute an external rpi-<subcommand> binary.
// Global flags are passed as RPI_* environment variables, the way they are read
// by SetDefaultsFromEnv.
//
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "rpi-" + subcommand

	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		log.Printf("External command %q not found in PATH: %v", externalCmdName, err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), flagsEnv(flag.CommandLine)...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}

// flagsEnv returns the environment variables of the current value of every flag of fs.
func flagsEnv(fs *flag.FlagSet) []string {
	var env []string
	fs.VisitAll(func(f *flag.Flag) {
		env = append(env, envName(f.Name)+"="+f.Value.String())
	})
	return env
}
