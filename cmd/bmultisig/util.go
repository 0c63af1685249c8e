package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

var (
	datadir   = btcutil.AppDataDir("bmultisig-cli", false)
	statePath = filepath.Join(datadir, "state.json")

	colorRed = string("\033[31m")

	supportedNetworks = map[string]*chaincfg.Params{
		chaincfg.MainNetParams.Name:       &chaincfg.MainNetParams,
		chaincfg.TestNet3Params.Name:      &chaincfg.TestNet3Params,
		chaincfg.RegressionNetParams.Name: &chaincfg.RegressionNetParams,
		chaincfg.SimNetParams.Name:        &chaincfg.SimNetParams,
	}
)

func getServerURL() (string, error) {
	state, err := getState()
	if err != nil {
		return "", err
	}
	addr, ok := state["server"]
	if !ok {
		return "", fmt.Errorf("set server with `config set server`")
	}
	return strings.TrimSuffix(addr, "/"), nil
}

func getNetwork() (*chaincfg.Params, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	net, ok := supportedNetworks[state["network"]]
	if !ok {
		return nil, fmt.Errorf("unknown network, try `config set network`")
	}
	return net, nil
}

func getRootPath() (string, error) {
	state, err := getState()
	if err != nil {
		return "", err
	}
	path, ok := state["rootpath"]
	if !ok {
		return "", fmt.Errorf("set root path with `config set rootpath`")
	}
	return path, nil
}

func getRequest(path string) (string, error) {
	serverURL, err := getServerURL()
	if err != nil {
		return "", err
	}

	resp, err := http.Get(serverURL + path)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return readResponse(resp)
}

func postRequest(path string, body interface{}) (string, error) {
	serverURL, err := getServerURL()
	if err != nil {
		return "", err
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	resp, err := http.Post(
		serverURL+path, "application/json", bytes.NewReader(buf),
	)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return readResponse(resp)
}

func readResponse(resp *http.Response) (string, error) {
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		errResp := map[string]string{}
		if err := json.Unmarshal(buf, &errResp); err == nil {
			if msg, ok := errResp["error"]; ok {
				return "", fmt.Errorf("%s", msg)
			}
		}
		return "", fmt.Errorf("%s", string(buf))
	}

	indented := &bytes.Buffer{}
	if err := json.Indent(indented, buf, "", "  "); err != nil {
		return string(buf), nil
	}
	return indented.String(), nil
}

func getState() (map[string]string, error) {
	file, err := os.ReadFile(statePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := writeState(initialState); err != nil {
			return nil, err
		}
		return initialState, nil
	}

	data := map[string]string{}
	json.Unmarshal(file, &data)
	return data, nil
}

func setState(partialState map[string]string) error {
	state, err := getState()
	if err != nil {
		return err
	}

	for key, value := range partialState {
		state[key] = value
	}
	return writeState(state)
}

func writeState(state map[string]string) error {
	dir := filepath.Dir(statePath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return fmt.Errorf("failed to create directory: %v", err)
		}
	}

	buf, _ := json.MarshalIndent(state, "", "  ")
	if err := os.WriteFile(statePath, buf, 0755); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

func printErr(err error) {
	msg := fmt.Sprintf("%s%s", colorRed, capitalize(err.Error()))
	fmt.Fprintln(os.Stderr, msg)
}

func capitalize(s string) string {
	ss := strings.ToUpper(s[0:1])
	ss += s[1:]
	return ss
}
