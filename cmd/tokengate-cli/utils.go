package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/urfave/cli/v2"
)

const managerTokenHeader = "X-Manager-Token"

func get(c *cli.Context, path string) error {
	return request(c, http.MethodGet, path, nil)
}

func post(c *cli.Context, path string, body map[string]any) error {
	return request(c, http.MethodPost, path, body)
}

func del(c *cli.Context, path string) error {
	return request(c, http.MethodDelete, path, nil)
}

func request(c *cli.Context, method, path string, body map[string]any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.String(urlFlagName)+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.String(managerTokenFlagName); token != "" {
		req.Header.Set(managerTokenHeader, token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	// nolint:all
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %s", resp.Status, string(respBody))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, respBody, "", "  "); err != nil {
		fmt.Println(string(respBody))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}
