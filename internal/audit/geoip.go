package audit

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

// GeoIP resolves client IPs to a city name for audit rows. It is optional;
// a nil *GeoIP resolves everything to "".
type GeoIP struct {
	reader *geoip2.Reader
}

func OpenGeoIP(path string) (*GeoIP, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &GeoIP{reader: reader}, nil
}

func (g *GeoIP) City(ip string) string {
	if g == nil || g.reader == nil {
		return ""
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	record, err := g.reader.City(parsed)
	if err != nil {
		return ""
	}
	return record.City.Names["en"]
}

func (g *GeoIP) Close() error {
	if g == nil || g.reader == nil {
		return nil
	}
	return g.reader.Close()
}
