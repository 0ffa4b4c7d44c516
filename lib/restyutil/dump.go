package restyutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(id string, contents string)
}

// DumpExchanges renders every request/response pair made by `client` to
// `output`. Ids are "<unix start>-<sequence>" so dumps sort by time.
func DumpExchanges(client *resty.Client, output Output) {
	prefix := time.Now().Unix()
	var counter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := fmt.Sprintf("%d-%04d", prefix, atomic.AddUint64(&counter, 1))
		output.Write(id, formatHttpMessage(res))
		return nil
	})
}
