package decoder

import (
	"net/url"

	"github.com/gorilla/schema"
)

// URLDecoder fills structs from query strings using `schema` tags.
type URLDecoder struct {
	decoder *schema.Decoder
}

func New() *URLDecoder {
	d := schema.NewDecoder()
	d.SetAliasTag("schema")
	return &URLDecoder{decoder: d}
}

func (d *URLDecoder) IgnoreUnknownKeys(i bool) {
	d.decoder.IgnoreUnknownKeys(i)
}

func (d *URLDecoder) Decode(dst any, src url.Values) error {
	return d.decoder.Decode(dst, src)
}
