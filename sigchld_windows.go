package main

import "context"

func watchChildren(ctx context.Context) {}
