package store

import "time"

// now is swapped in tests that need fixed timestamps.
var now = time.Now
