package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klipach/fbtoken/config"
	"github.com/klipach/fbtoken/identity"
)

func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, string(data))
	return err
}

// printResult writes the refresh token, or the whole result with --output json.
func (a *app) printResult(res *identity.Result) error {
	if a.cfg.Output == config.OutputJSON {
		return a.printJSON(res)
	}
	_, err := fmt.Fprintln(a.stdout, res.RefreshToken)
	return err
}

// printRejection writes the raw response of a rejected exchange so the caller can see why.
func (a *app) printRejection(err error) {
	var rejected *identity.RejectedError
	if errors.As(err, &rejected) {
		fmt.Fprintln(a.stdout, string(rejected.Body))
	}
}
