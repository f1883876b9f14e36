// Package instagram wraps the black-box Instagram API surface the posting
// pipeline needs: session login/logout, nearby location search, and photo
// upload with caption and location.
package instagram
