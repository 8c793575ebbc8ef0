// Package render turns simulation state into pixels.
//
// A Scene is an abstract snapshot of every visual geom, rebuilt from the
// model and data before each capture. A Rasterizer draws the scene into a
// FrameBuffer holding RGB bytes and window-space depth, with rows stored
// bottom-up the way glReadPixels returns them. The software rasterizer is
// always available; the GL rasterizer is compiled in with the egl or glfw
// build tags.
package render
