package docx

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"suratgen/bizerror"
)

// LoadTemplate reads the pre-authored template from a local path or an HTTP
// URL.
func LoadTemplate(pathOrURL string) ([]byte, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		resp, err := http.Get(pathOrURL)
		if err != nil {
			return nil, &bizerror.ErrTemplateLoad{Cause: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, &bizerror.ErrTemplateLoad{Cause: fmt.Errorf("fetch %s: %s", pathOrURL, resp.Status)}
		}
		data, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return nil, &bizerror.ErrTemplateLoad{Cause: err}
		}
		return data, nil
	}

	data, err := ioutil.ReadFile(pathOrURL)
	if err != nil {
		return nil, &bizerror.ErrTemplateLoad{Cause: err}
	}
	return data, nil
}
