package config

import "time"

// Delay is a duration written in TOML as a string such as "750ms" or "5s".
type Delay time.Duration

// Duration returns d as a time.Duration.
func (d Delay) Duration() time.Duration {
	return time.Duration(d)
}

// UnmarshalText parses a time.ParseDuration string.
func (d *Delay) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		log.Errorf("Error parsing duration (%s): %s", text, err.Error())
		return err
	}
	*d = Delay(v)
	return nil
}
